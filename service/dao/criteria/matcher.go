package criteria

import (
	"github.com/viant/rrsim/service/dao"
)

// FilterByState returns true when state matches the State parameter. Values
// may be a single string-like state or a slice of them; other parameters
// are ignored.
func FilterByState[S ~string](state S, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != dao.ParameterState {
			continue
		}
		if !matches(string(state), parameter.Value) {
			return false
		}
	}
	return true
}

func matches(state string, value interface{}) bool {
	switch actual := value.(type) {
	case string:
		return state == actual
	case []string:
		for _, candidate := range actual {
			if state == candidate {
				return true
			}
		}
		return false
	case interface{ String() string }:
		return state == actual.String()
	}
	return true
}
