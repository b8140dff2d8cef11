package ticket

import "errors"

// Typed rejections returned by transitions. Each maps to a localized
// ephemeral notice; none of them mutate state.
var (
	ErrNotStaff           = errors.New("ticket: only staff can claim")
	ErrAlreadyClaimed     = errors.New("ticket: already claimed")
	ErrNoManagePermission = errors.New("ticket: channel management permission required")
	ErrTicketGone         = errors.New("ticket: channel no longer exists")
)
