package pool

func markSpawned(pi *PooledInstance) {
	pi.returned = false
}

func markReturned(pi *PooledInstance) {
	pi.returned = true
}

// isIdleMember reports whether pi belongs to p and is already sitting in its free list.
func isIdleMember(p *Pool, pi *PooledInstance) bool {
	return pi.returned && pi.pool.Value() == p && !p.cleared
}
