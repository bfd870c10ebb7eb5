//go:build !unix

package services

// processAlive cannot inspect other processes here; leases alone decide.
func processAlive(int) bool {
	return true
}
