/*
Package workers sizes worker pools in containerized environments.

runtime.NumCPU reports the host's CPUs, while GOMAXPROCS follows the
container's cgroup CPU limit (Go 1.19+). Counts here are derived from
GOMAXPROCS so a pod limited to 2 CPUs on a 64-core node starts a handful of
workers rather than dozens.

# Usage

	numWorkers := workers.ForCPU(8)    // 1 per CPU, at most 8
	numWorkers := workers.ForIO(16)    // 2 per CPU, at most 16
	numWorkers := workers.ForMixed(12) // 1.5 per CPU, at most 12
	numWorkers := workers.ForProbes(0) // probe pool, default cap

# Environment Variable Override

PROBE_WORKERS pins the count. Values that are not positive integers are
ignored. The override is still capped by the limit argument.

	env:
	- name: PROBE_WORKERS
	  value: "4"
*/
package workers
