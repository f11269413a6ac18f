package process

// ProcessFinder defines operations for discovering processes
type ProcessFinder interface {
	// FindProcessByPID finds a process by its PID
	FindProcessByPID(pid ProcessID) (*ProcessInfo, error)

	// FindProcessByName finds processes by their name. Matching is
	// case-insensitive and ignores a trailing ".exe", see NormalizeName.
	FindProcessByName(name string) ([]ProcessInfo, error)
}
