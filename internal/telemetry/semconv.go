package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic convention attribute keys for spawnpool telemetry.
// Following OpenTelemetry naming conventions: namespace.attribute_name
const (
	// Pool attributes
	AttrPoolName  = attribute.Key("pool.name")
	AttrTemplate  = attribute.Key("template")
	AttrOperation = attribute.Key("operation")
	AttrResult    = attribute.Key("result")

	// Event attributes
	AttrEventType = attribute.Key("event.type")

	// Environment attribute
	AttrEnvironment = attribute.Key("environment")
)

// Result values
const (
	ResultReused       = "reused"
	ResultInstantiated = "instantiated"
	ResultOverCapacity = "over_capacity"
	ResultReleased     = "released"
	ResultForeign      = "foreign"
	ResultDuplicate    = "duplicate"
	ResultCreated      = "created"
	ResultExisting     = "existing"
	ResultOK           = "ok"
	ResultNotFound     = "not_found"
	ResultInvalid      = "invalid"
)

// Manager operation names
const (
	OpSpawn      = "spawn"
	OpDespawn    = "despawn"
	OpCreatePool = "create_pool"
)

// PoolAttributes returns common attributes for pool metrics.
func PoolAttributes(environment, poolName, template string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrEnvironment.String(environment),
		AttrPoolName.String(poolName),
		AttrTemplate.String(template),
	}
}

// OperationResultAttributes returns attributes for operation metrics with result classification.
func OperationResultAttributes(environment, operation, result string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrEnvironment.String(environment),
		AttrOperation.String(operation),
		AttrResult.String(result),
	}
}

// EventAttributes returns attributes for event bus metrics.
func EventAttributes(environment, eventType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrEnvironment.String(environment),
		AttrEventType.String(eventType),
	}
}
