// Package memory keeps the Go heap inside a container's memory limit.
//
// [ConfigureFromEnv] derives GOMEMLIMIT from the container limit passed via
// the Kubernetes Downward API:
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
//	- name: MEMORY_RATIO
//	  value: "0.8"
//
// An explicit GOMEMLIMIT always takes precedence. GOMEMLIMIT is a soft
// limit that only steers the garbage collector, so decoding many large
// uploads at once can still overshoot it. [Gate] adds backpressure for
// that: probe workers call [Gate.Wait] before decoding, and the gate closes
// once the sampled heap reaches Config.PauseAt of the limit and reopens
// below Config.ResumeAt.
package memory
