// Package kafka publishes domain events to Kafka with segmentio/kafka-go.
//
// The service emits one translation.completed event per persisted history
// record. Connection settings (TLS, SASL, compression) live in Config and
// are turned into a kafka-go Transport by CreateTransport; the producer
// subpackage owns the writer.
package kafka
