package protocol

import (
	"fmt"

	"github.com/saif-programmer/together/domain"
)

// CanvasRelay forwards pointer coordinates to every peer but the one that drew them.
type CanvasRelay struct {
	broadcaster domain.Broadcaster
}

func NewCanvasRelay(b domain.Broadcaster) *CanvasRelay {
	return &CanvasRelay{broadcaster: b}
}

func (r *CanvasRelay) Relay(origin string, x, y float64) error {
	frame, err := EncodeCanvasCoords(x, y)
	if err != nil {
		return fmt.Errorf("encode canvas coords: %w", err)
	}
	r.broadcaster.Broadcast(frame, origin)
	return nil
}
