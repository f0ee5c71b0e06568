package wakeword

import "context"

// Scripted is a test double that fires a fixed number of detections, then
// reports timeout on ListenOnce and returns nil from ListenContinuous once
// exhausted.
type Scripted struct {
	Detections int
	fired      int
}

func (s *Scripted) ListenOnce(ctx context.Context, timeout int) (bool, error) {
	if s.fired >= s.Detections {
		return false, nil
	}
	s.fired++
	return true, nil
}

func (s *Scripted) ListenContinuous(ctx context.Context, callback func(ctx context.Context) error) error {
	for s.fired < s.Detections {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.fired++
		if err := callback(ctx); err != nil {
			return err
		}
	}
	return nil
}
