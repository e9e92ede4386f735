package automata

// Version is the release of the automata module, reported by the CLI and the HTTP API.
const Version = "0.4.0"
