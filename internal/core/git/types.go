package git

// BranchInfo describes what a working tree currently has checked out
type BranchInfo struct {
	// Repository is derived from the origin remote, or the toplevel directory name
	Repository string
	// Branch is the short branch name, or an abbreviated hash when detached
	Branch   string
	Detached bool
}

// Label composes the display label, e.g. "treesync@main"
func (b BranchInfo) Label() string {
	switch {
	case b.Repository == "" && b.Branch == "":
		return ""
	case b.Repository == "":
		return b.Branch
	case b.Branch == "":
		return b.Repository
	default:
		return b.Repository + "@" + b.Branch
	}
}
