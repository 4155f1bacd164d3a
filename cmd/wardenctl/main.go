// wardenctl inspects and maintains the collections a warden engine
// persists between restarts.
//
// Usage:
//
//	# List everything stored in the IP collection
//	wardenctl --backend bbolt --data-dir /var/lib/warden dump IP
//
//	# List the keys of GLOBAL matching a pattern, skipping one key
//	wardenctl --config warden.yaml dump GLOBAL --regex '^deploy' --exclude deployments
//
//	# Read, write and remove single keys
//	wardenctl get GLOBAL deployments
//	wardenctl set GLOBAL deployments 2
//	wardenctl del GLOBAL deployments
package main

func main() {
	Execute()
}
