// Package notify defines state-change notifications and the in-process
// notification bus that carries them.
//
// A Notification pairs a state name with an optional payload. The Bus is a
// synchronous publish/subscribe channel: Publish delivers the notification to
// every active subscriber in subscription order, in the publisher's
// goroutine. Consumers that only need to receive notifications should depend
// on the Source interface rather than the concrete Bus.
package notify
