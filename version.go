package relay

// Version is the library version, overridable at build time with
// -ldflags "-X github.com/relaykit/relay.Version=...".
var Version = "0.1.0"
