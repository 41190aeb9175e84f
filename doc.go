// Package lyra controls MPRIS media players over a D-Bus session bus
// connection. It offers a Player handle for issuing playback commands
// and reading or writing player properties, and an EventManager for
// subscribing to PropertiesChanged and Seeked signals.
//
// The bus connection is owned by the caller and shared by every Player
// and EventManager built from it; lyra never opens or closes it.
package lyra
