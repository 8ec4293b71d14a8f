// Package bus provides the in-process publish/subscribe channel used to fan
// out ownership-change notifications.
//
// Every subscriber gets its own bounded queue. Publishing never blocks: when
// a queue is full the oldest pending event is dropped and counted, so a slow
// consumer can only lose its own events, never stall ledger ingestion.
//
// Subscriptions can be filtered by event type; an unfiltered subscription
// receives everything. Per subscriber, events arrive in emission order.
package bus
