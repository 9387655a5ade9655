package fixture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robmorgan/beatkeeper/logger"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// UniverseSize is the number of channels in a DMX512 universe.
const UniverseSize = 512

// DMXState holds the DMX512 values for each channel
type DMXState struct {
	universes map[int][]byte
	lock      sync.Mutex
}

type dmxOperation struct {
	universe, channel, value int
}

func (s *DMXState) getValue(universe, channel int) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.universes[universe] == nil {
		return 0
	}
	return int(s.universes[universe][channel-1])
}

func (s *DMXState) set(ops ...dmxOperation) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for _, op := range ops {
		channel := op.channel
		universe := op.universe
		value := op.value
		if channel < 1 || channel > UniverseSize {
			return fmt.Errorf("dmx channel (%d) not in range, op=%v", channel, op)
		}

		s.initializeUniverse(universe)
		s.universes[universe][channel-1] = byte(value)
	}

	return nil
}

func (s *DMXState) initializeUniverse(universe int) {
	if s.universes == nil {
		s.universes = make(map[int][]byte)
	}
	if s.universes[universe] == nil {
		chans := make([]byte, UniverseSize)
		s.universes[universe] = chans
	}
}

// Universes returns a copy of every universe written so far.
func (s *DMXState) Universes() map[int][]byte {
	s.lock.Lock()
	defer s.lock.Unlock()

	out := make(map[int][]byte, len(s.universes))
	for k, v := range s.universes {
		values := make([]byte, len(v))
		copy(values, v)
		out[k] = values
	}
	return out
}

// OLAClient is the interface for communicating with OLA
type OLAClient interface {
	SendDmx(universe int, values []byte) (status bool, err error)
	Close()
}

// Renderer produces the DMX state to send on each refresh.
type Renderer interface {
	Render() error
	GetDMXState() *DMXState
}

// SendDMXWorker renders the light and sends OLA the current dmxState across all universes
func SendDMXWorker(ctx context.Context, clk clock.Clock, client OLAClient, tick time.Duration, light Renderer, wg *sync.WaitGroup) error {
	defer wg.Done()
	defer client.Close()

	logger := logger.GetProjectLogger()

	t := clk.NewTimer(tick)
	defer t.Stop()
	logger.Debugf("SendDMXWorker timer started at %v", clk.Now())

	for {
		select {
		case <-ctx.Done():
			logger.Info("SendDMXWorker shutdown")
			return ctx.Err()
		case <-t.C():
			if err := light.Render(); err != nil {
				logger.Errorf("could not render beat light: %v", err)
			}
			for k, v := range light.GetDMXState().Universes() {
				if _, err := client.SendDmx(k, v); err != nil {
					logger.WithFields(logrus.Fields{"universe": k}).Warnf("could not send dmx: %v", err)
				}
			}
			t.Reset(tick)
		}
	}
}
