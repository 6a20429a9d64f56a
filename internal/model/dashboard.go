package model

// BranchCounts is what a branch dashboard shows. Consumables only counts
// stock that is available.
type BranchCounts struct {
	Branch      string `json:"branch"`
	PCs         int    `json:"inventory"`
	Printers    int    `json:"printers"`
	Consumables int    `json:"consommables"`
}

// Overview is the administrator dashboard.
type Overview struct {
	Users            int            `json:"users"`
	Branches         int            `json:"branches"`
	PCs              int            `json:"inventory"`
	PasswordRequests int            `json:"messages"`
	NewPCs           int            `json:"new_pcs"`
	PerBranch        []BranchCounts `json:"per_branch"`
}
