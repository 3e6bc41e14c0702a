package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Instance is one of the four managed inventory categories.
type Instance string

const (
	InstanceObjectType    Instance = "TMO"
	InstanceObject        Instance = "MO"
	InstanceParameterType Instance = "TPRM"
	InstanceParameter     Instance = "PRM"
)

// Per-kind event indexes plus the union pattern covering all of them.
const (
	IndexObjectType    = "event_manager_object_type"
	IndexObject        = "event_manager_object"
	IndexParameterType = "event_manager_parameter_type"
	IndexParameter     = "event_manager_parameter"
	IndexAll           = "event_manager*"
)

// ErrUnknownInstance signals an instance tag outside the closed set of kinds.
var ErrUnknownInstance = errors.New("unknown inventory instance")

// ParseInstance maps an instance tag onto the closed enumeration.
func ParseInstance(s string) (Instance, error) {
	switch inst := Instance(strings.ToUpper(s)); inst {
	case InstanceObjectType, InstanceObject, InstanceParameterType, InstanceParameter:
		return inst, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownInstance, s)
	}
}

// Instances lists every managed kind.
func Instances() []Instance {
	return []Instance{InstanceObjectType, InstanceObject, InstanceParameterType, InstanceParameter}
}

var indexByInstance = map[Instance]string{
	InstanceObjectType:    IndexObjectType,
	InstanceObject:        IndexObject,
	InstanceParameterType: IndexParameterType,
	InstanceParameter:     IndexParameter,
}

var instanceByIndex = map[string]Instance{
	IndexObjectType:    InstanceObjectType,
	IndexObject:        InstanceObject,
	IndexParameterType: InstanceParameterType,
	IndexParameter:     InstanceParameter,
}

// Index returns the physical index storing this kind's events.
func (i Instance) Index() string {
	return indexByInstance[i]
}

// InstanceForIndex resolves the kind label for a physical index name.
func InstanceForIndex(index string) (Instance, bool) {
	inst, ok := instanceByIndex[index]
	return inst, ok
}

// IndexForInstanceTag routes an instance filter value to its index, falling
// back to the union of all kinds when the tag is absent or unrecognized.
func IndexForInstanceTag(tag string) string {
	inst, err := ParseInstance(tag)
	if err != nil {
		return IndexAll
	}
	return inst.Index()
}

var baseStopList = map[string]struct{}{
	"id":                {},
	"creation_date":     {},
	"modification_date": {},
	"version":           {},
}

var parameterStopList = map[string]struct{}{
	"id": {},
}

// StopList returns identity/system attributes excluded from event generation.
func (i Instance) StopList() map[string]struct{} {
	if i == InstanceParameter {
		return parameterStopList
	}
	return baseStopList
}
