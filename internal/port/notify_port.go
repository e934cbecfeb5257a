package port

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

type Notice struct {
	Level   NoticeLevel
	Message string
}

type Notifier interface {
	Notify(n Notice)
}
