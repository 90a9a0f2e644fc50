package services

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"meetingroom/internal/models"
)

// PasswordPoolSize is the number of two-digit codes "00" through "99"
const PasswordPoolSize = 100

// PoolStats summarises password usage without revealing codes
type PoolStats struct {
	InUse int `json:"in_use"`
	Free  int `json:"free"`
}

// PasswordPool hands out two-digit meeting passwords not held by any current meeting.
// The in-use set is always derived from the meetings, never stored.
type PasswordPool struct {
	intn func(n int) int
}

// NewPasswordPool creates a pool. intn must return a value in [0, n); nil uses math/rand.
func NewPasswordPool(intn func(n int) int) *PasswordPool {
	if intn == nil {
		intn = rand.IntN
	}
	return &PasswordPool{intn: intn}
}

// FormatPassword renders a code as two digits
func FormatPassword(n int) string {
	return fmt.Sprintf("%02d", n)
}

// ActivePasswords returns the passwords of meetings whose end time is not before now
func ActivePasswords(meetings []models.Meeting, now time.Time) map[string]struct{} {
	inUse := make(map[string]struct{}, len(meetings))
	for i := range meetings {
		m := &meetings[i]
		if m.MeetingPassword == "" || m.IsExpired(now) {
			continue
		}
		inUse[m.MeetingPassword] = struct{}{}
	}
	return inUse
}

// FreePasswords lists the codes not in inUse, ascending
func FreePasswords(inUse map[string]struct{}) []string {
	free := make([]string, 0, PasswordPoolSize)
	for i := 0; i < PasswordPoolSize; i++ {
		code := FormatPassword(i)
		if _, taken := inUse[code]; !taken {
			free = append(free, code)
		}
	}
	return free
}

// Generate picks uniformly among the free codes
func (p *PasswordPool) Generate(inUse map[string]struct{}) (string, error) {
	free := FreePasswords(inUse)
	if len(free) == 0 {
		return "", ErrPoolExhausted
	}
	return free[p.intn(len(free))], nil
}

// Stats counts in-use and free codes
func (p *PasswordPool) Stats(inUse map[string]struct{}) PoolStats {
	free := len(FreePasswords(inUse))
	return PoolStats{InUse: PasswordPoolSize - free, Free: free}
}

// SortedPasswords returns the set as an ascending slice
func SortedPasswords(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for code := range set {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
