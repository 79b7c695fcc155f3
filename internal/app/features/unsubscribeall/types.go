package unsubscribeall

import "github.com/dalemusser/twfhub/internal/app/system/viewdata"

type confirmVM struct {
	viewdata.BaseVM

	Message string
	// Nothing is true when there is nothing left to unsubscribe from.
	Nothing bool
}

type resultVM struct {
	viewdata.BaseVM

	Forums      int
	Discussions int64
	Failed      int
	Message     string
}
