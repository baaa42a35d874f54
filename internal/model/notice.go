package model

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "INFO"
	NoticeWarning NoticeLevel = "WARNING"
	NoticeError   NoticeLevel = "ERROR"
)

// Notice is a dismissable user-facing message. Degraded lookups, dropped
// attachments and submission failures all surface through notices instead
// of silent logs.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

func InfoNotice(msg string) Notice {
	return Notice{Level: NoticeInfo, Message: msg}
}

func WarningNotice(msg string) Notice {
	return Notice{Level: NoticeWarning, Message: msg}
}

func ErrorNotice(msg string) Notice {
	return Notice{Level: NoticeError, Message: msg}
}
