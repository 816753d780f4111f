package storage

import "fmt"

// keySeparator is the reserved character experiment and arm names may
// not contain (spec.md invariant I7). The remote key layout uses it
// to delimit the bandit:experiment:{name}:* hierarchy (spec.md §4.4),
// so an embedded separator in a caller-supplied name would corrupt it.
const keySeparator = ":"

// ValidateName rejects any experiment or arm name containing the
// reserved key separator. Engine.Init and Engine.CreateArm call it
// before touching any state. The backends do not call it, and the key
// builders below do not check their input.
func ValidateName(name string) error {
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			return fmt.Errorf("storage: name %q must not contain %q", name, keySeparator)
		}
	}
	return nil
}

// paramsKey and chooseCountKey are the two key shapes the Go side
// builds directly (plain GET/HGETALL/INCR, no script needed). Every
// other key (arm-names, arm-states, max-reward) is only ever touched
// from inside a Lua script in scripts.go, which builds its own key
// strings from ARGV — kept in lockstep with these by convention, not
// by sharing code across the Go/Lua boundary.
func paramsKey(experimentName string) string {
	return fmt.Sprintf("bandit:experiment:%s:params", experimentName)
}

func chooseCountKey(experimentName string) string {
	return fmt.Sprintf("bandit:experiment:%s:choose-count", experimentName)
}
