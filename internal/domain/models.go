package domain

// Domain contains core models shared by the relay.

// Result is a parsed JSON document of arbitrary shape. Numbers are kept as
// json.Number so they re-encode exactly as received.
type Result = any
