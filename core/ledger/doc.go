// Package ledger is the client for the external append-only ledger: supply
// and balance queries over HTTP, plus a filtered live transfer feed over a
// websocket.
//
// The feed is the ingestion boundary of the system. Frames arrive loosely
// typed; parseFrame validates every field and maps it into a TransferEvent
// before anything downstream can see it. Malformed frames are logged and
// dropped, never propagated.
//
// Consumers depend on the Client and Stream interfaces, so tests substitute
// mocks without touching a network.
package ledger
