// Package infra contains technical adapters such as metrics exporters,
// the MQTT rule ingestor and the zerolog logger. These packages depend
// only on the interfaces defined in the core packages.
package infra
