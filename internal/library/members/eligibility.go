package members

// 貸出可否判定。ルールの適用順は固定で、最初に引っかかった理由だけを返す。
//  1. 会員が存在するか
//  2. 利用停止中でないか
//  3. 未返却の貸出数が上限未満か

type Reason string

const (
	ReasonMemberNotFound       Reason = "MEMBER_NOT_FOUND"
	ReasonMemberSuspended      Reason = "MEMBER_SUSPENDED"
	ReasonMaxBorrowingsReached Reason = "MAX_BORROWINGS_REACHED"
)

type EligibilityResult struct {
	CanBorrow bool   `json:"can_borrow"`
	Reason    Reason `json:"reason,omitempty"`
}

// CheckEligibility は現在状態のみから判定する純粋関数。
// activeCount は未返却（borrowed / overdue）の貸出数。
func CheckEligibility(found bool, status string, activeCount, maxActiveBorrowings int) EligibilityResult {
	if !found {
		return EligibilityResult{CanBorrow: false, Reason: ReasonMemberNotFound}
	}
	if status == StatusSuspended {
		return EligibilityResult{CanBorrow: false, Reason: ReasonMemberSuspended}
	}
	if activeCount >= maxActiveBorrowings {
		return EligibilityResult{CanBorrow: false, Reason: ReasonMaxBorrowingsReached}
	}
	return EligibilityResult{CanBorrow: true}
}
