package consts

const (
	// PairingCodeLength 配对码长度
	PairingCodeLength = 6
)

// 通知类型
const (
	NotificationTypeMessage  = "new_message"
	NotificationTypeFile     = "new_file"
	NotificationTypePaired   = "paired"
	NotificationTypeUnpaired = "unpaired"
)
