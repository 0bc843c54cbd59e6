package notify

import "fmt"

// Builders for the notifications the backend produces. Titles and wording
// follow the operator UI, which is Chinese.

// DeviceOnline reports a device coming online.
func DeviceOnline(deviceID string) Notification {
	return Notification{
		Title:     "设备在线",
		Message:   fmt.Sprintf("设备 %s 已上线", deviceID),
		Severity:  SeveritySuccess,
		DeviceID:  deviceID,
		EventType: "DEVICE_ONLINE",
	}
}

// DeviceOffline reports a device going offline.
func DeviceOffline(deviceID string) Notification {
	return Notification{
		Title:     "设备离线",
		Message:   fmt.Sprintf("设备 %s 已离线", deviceID),
		Severity:  SeverityWarning,
		DeviceID:  deviceID,
		EventType: "DEVICE_OFFLINE",
	}
}

// DeviceOfflineWarning reports a device continuously offline beyond the
// escalation threshold.
func DeviceOfflineWarning(deviceID string) Notification {
	return Notification{
		Title:     "设备离线警告",
		Message:   fmt.Sprintf("设备 %s 已离线超过5分钟，请检查设备状态", deviceID),
		Severity:  SeverityError,
		DeviceID:  deviceID,
		EventType: "DEVICE_OFFLINE_WARNING",
	}
}

// ConfigSync reports the outcome of a medicine schedule sync.
func ConfigSync(deviceID string, success bool) Notification {
	n := Notification{
		Title:     "配置同步",
		Message:   fmt.Sprintf("设备 %s 配置同步成功", deviceID),
		Severity:  SeveritySuccess,
		DeviceID:  deviceID,
		EventType: "CONFIG_SYNC",
	}
	if !success {
		n.Message = fmt.Sprintf("设备 %s 配置同步失败", deviceID)
		n.Severity = SeverityError
	}
	return n
}

// MedicationReminder reports a due medication.
func MedicationReminder(deviceID, medicineName string) Notification {
	return Notification{
		Title:     "服药提醒",
		Message:   fmt.Sprintf("请按时服用 %s", medicineName),
		Severity:  SeverityReminder,
		DeviceID:  deviceID,
		EventType: "MEDICATION_REMINDER",
	}
}

// MedicineTaken confirms a dose was taken.
func MedicineTaken(deviceID, medicineName string) Notification {
	return Notification{
		Title:     "服药确认",
		Message:   fmt.Sprintf("已确认服用 %s", medicineName),
		Severity:  SeveritySuccess,
		DeviceID:  deviceID,
		EventType: "MEDICINE_TAKEN",
	}
}

// DeviceWarning reports a device-raised warning.
func DeviceWarning(deviceID, detail string) Notification {
	return Notification{
		Title:     "设备警告",
		Message:   fmt.Sprintf("设备 %s 警告: %s", deviceID, detail),
		Severity:  SeverityWarning,
		DeviceID:  deviceID,
		EventType: "DEVICE_WARNING",
	}
}

// DeviceError reports a device-raised error.
func DeviceError(deviceID, detail string) Notification {
	return Notification{
		Title:     "设备错误",
		Message:   fmt.Sprintf("设备 %s 错误: %s", deviceID, detail),
		Severity:  SeverityError,
		DeviceID:  deviceID,
		EventType: "DEVICE_ERROR",
	}
}

// Emergency reports an emergency raised by a device.
func Emergency(deviceID string) Notification {
	return Notification{
		Title:     "紧急报警",
		Message:   fmt.Sprintf("设备 %s 触发紧急报警，请立即处理！", deviceID),
		Severity:  SeverityError,
		DeviceID:  deviceID,
		EventType: "EMERGENCY",
	}
}

// EmergencyCancel reports an emergency cleared by a device.
func EmergencyCancel(deviceID string) Notification {
	return Notification{
		Title:     "紧急报警解除",
		Message:   fmt.Sprintf("设备 %s 紧急报警已解除", deviceID),
		Severity:  SeverityInfo,
		DeviceID:  deviceID,
		EventType: "EMERGENCY_CANCEL",
	}
}

// Broadcast creates a fleet-wide notification with no device target.
func Broadcast(title, message string) Notification {
	return Notification{
		Title:    title,
		Message:  message,
		Severity: SeverityInfo,
	}
}
