// Package network resolves the IP address a container was assigned on a
// virtual network, from the metadata the engine reports.
package network

import "github.com/cloudsim-labs/fireprox-ctl/internal/runtime"

// ContainerIP returns the container's address on the named network. A
// network the container is not attached to, or an endpoint with no address
// assigned yet, yields ok == false rather than an error; freshly launched
// containers routinely hit both before the engine finishes wiring them.
//
// With an empty networkName the first non-empty address across all
// attached networks is returned, in the engine's own enumeration order.
// That is a best-effort tie-break for single-network containers, not a
// deterministic contract.
func ContainerIP(c *runtime.Container, networkName string) (ip string, ok bool) {
	if networkName != "" {
		ip = c.Networks[networkName]
		return ip, ip != ""
	}

	for _, ip := range c.Networks {
		if ip != "" {
			return ip, true
		}
	}
	return "", false
}
