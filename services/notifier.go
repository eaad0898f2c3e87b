package services

// Notifier получает уведомления об успешных изменениях. Доставка не гарантируется
// и на результат операции не влияет.
type Notifier interface {
	Publish(topic, kind string, payload interface{})
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, string, interface{}) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
