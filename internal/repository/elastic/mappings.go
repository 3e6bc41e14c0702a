package elastic

import "fmt"

// The event value columns are schema-less; queryable per-type projections of
// them are exposed as runtime fields so cross-type filters (numeric ranges,
// string-exact matches, datetime bounds, list lengths) keep working.
const (
	numScript = "def v = params._source.%s; if (v == null) return; " +
		"if (v instanceof List) { for (def x : (List)v) { if (x instanceof Number) emit(((Number)x).doubleValue()); } } " +
		"else if (v instanceof Number) { emit(((Number)v).doubleValue()); }"

	strScript = "def v = params._source.%s; if (v == null) return; " +
		"if (v instanceof List) { for (def x : (List)v) { if (x != null) emit(x.toString()); } } " +
		"else { emit(v.toString()); }"

	boolScript = "def v = params._source.%s; if (v == null) return; " +
		"if (v instanceof List) { for (def x : (List)v) { if (x instanceof Boolean) emit(x); } } " +
		"else if (v instanceof Boolean) { emit(v); }"

	dtScript = "def v = params._source.%s; if (v == null) return; " +
		"if (v instanceof List) { for (def x : (List)v) { if (x instanceof String) { try { emit(java.time.Instant.parse(x).toEpochMilli()); } catch (Exception e) {} } else if (x instanceof Number) { emit(((Number)x).longValue()); } } } " +
		"else if (v instanceof String) { try { emit(java.time.Instant.parse(v).toEpochMilli()); } catch (Exception e) {} } " +
		"else if (v instanceof Number) { emit(((Number)v).longValue()); }"

	lenScript = "def v = params._source.%s; if (v instanceof List) emit(((List)v).size());"
)

func runtimeField(fieldType, script, column string) map[string]any {
	return map[string]any{
		"type":   fieldType,
		"script": fmt.Sprintf(script, column),
	}
}

func valueProjections(column string) map[string]any {
	return map[string]any{
		column + "_num":  runtimeField("double", numScript, column),
		column + "_str":  runtimeField("keyword", strScript, column),
		column + "_bool": runtimeField("boolean", boolScript, column),
		column + "_dt":   runtimeField("date", dtScript, column),
		column + "_len":  runtimeField("long", lenScript, column),
	}
}

func eventIndexBody() map[string]any {
	runtime := map[string]any{}
	for name, def := range valueProjections("old_value") {
		runtime[name] = def
	}
	for name, def := range valueProjections("new_value") {
		runtime[name] = def
	}

	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   3,
			"number_of_replicas": 1,
			"refresh_interval":   "1s",
		},
		"mappings": map[string]any{
			"dynamic": "false",
			"properties": map[string]any{
				"event_type":  map[string]any{"type": "keyword"},
				"user_id":     map[string]any{"type": "long", "ignore_malformed": true},
				"session_id":  map[string]any{"type": "keyword"},
				"instance_id": map[string]any{"type": "long"},
				"attribute":   map[string]any{"type": "keyword"},
				"version":     map[string]any{"type": "integer"},
				"valid_from":  map[string]any{"type": "date"},
				"valid_to":    map[string]any{"type": "date", "ignore_malformed": true},
				"is_active":   map[string]any{"type": "boolean"},
			},
			"runtime": runtime,
		},
	}
}
