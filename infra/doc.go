// Package infra contains technical adapters such as the HTTP clients of the
// rate, charger-directory and routing services, the journal, MQTT publisher
// and metrics exporters. These packages should depend only on the
// interfaces defined in the core packages.
package infra
