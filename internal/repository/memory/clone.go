package memory

import "calext-licensing-be/internal/entity"

func copyUser(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func copySubscription(s *entity.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	c := *s
	if s.PaddleData != nil {
		c.PaddleData = make(map[string]interface{}, len(s.PaddleData))
		for k, v := range s.PaddleData {
			c.PaddleData[k] = v
		}
	}
	return &c
}

func copyAttempt(a *entity.PaymentAttempt) *entity.PaymentAttempt {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func copyEvent(e *entity.WebhookEvent) *entity.WebhookEvent {
	if e == nil {
		return nil
	}
	c := *e
	if e.Payload != nil {
		c.Payload = make(map[string]interface{}, len(e.Payload))
		for k, v := range e.Payload {
			c.Payload[k] = v
		}
	}
	return &c
}
