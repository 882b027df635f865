package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"cfclient/mapcmd"

	"github.com/remeh/sizedwaitgroup"
)

// replayer feeds recorded server messages into a map session. With a
// positive fps it paces frames like the live server; otherwise it runs as
// fast as possible. Animations move on recorded tick commands, and only a
// paced recording without any advances them on every beat.
type replayer struct {
	frames [][]byte
	fps    int
	cur    int // number of frames processed
	ticker *time.Ticker
	sess   *mapcmd.Session
	// beatTicks is set when the beat drives animations.
	beatTicks bool

	errors  int
	skipped int
}

func newReplayer(sess *mapcmd.Session, frames [][]byte, fps int) *replayer {
	p := &replayer{frames: frames, fps: fps, sess: sess}
	if fps > 0 {
		p.ticker = time.NewTicker(time.Second / time.Duration(fps))
		p.beatTicks = !hasTicks(frames)
	}
	return p
}

// hasTicks reports whether the server sent its own tick commands.
func hasTicks(frames [][]byte) bool {
	for _, m := range frames {
		if cmd, _ := splitCommand(m); cmd == "tick" {
			return true
		}
	}
	return false
}

func (p *replayer) run(ctx context.Context) error {
	if p.ticker == nil {
		for p.step() {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		return nil
	}
	defer p.ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.ticker.C:
			more := p.step()
			if p.beatTicks {
				p.sess.Tick()
			}
			if !more {
				return nil
			}
		}
	}
}

// step dispatches the next frame and reports whether frames remain.
func (p *replayer) step() bool {
	if p.cur >= len(p.frames) {
		return false
	}
	err := dispatchMessage(p.sess, p.frames[p.cur])
	switch {
	case errors.Is(err, mapcmd.ErrUnknownCommand):
		p.skipped++
	case err != nil:
		p.errors++
	}
	p.cur++
	return p.cur < len(p.frames)
}

// duration is the playback time of the recording at the replay rate.
func (p *replayer) duration() time.Duration {
	if p.fps <= 0 {
		return 0
	}
	return time.Duration(len(p.frames)) * time.Second / time.Duration(p.fps)
}

// loadFrames reads a recording or a packet capture.
func loadFrames(path string, s Settings) ([][]byte, time.Duration, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pcap", ".pcapng", ".cap":
		c, err := loadCapture(path, s.ServerPort)
		if err != nil {
			return nil, 0, err
		}
		return c.frames, c.span(), nil
	}
	frames, err := loadRecording(path)
	return frames, 0, err
}

// replayFile replays one file into a fresh session. With keep the session
// stays attached to the report.
func replayFile(ctx context.Context, path string, s Settings, keep bool) *replayReport {
	rep := &replayReport{Path: path}
	start := time.Now()
	frames, span, err := loadFrames(path, s)
	if err != nil {
		rep.Err = err
		if len(frames) == 0 {
			return rep
		}
		logError("%s: replaying %d frames read before: %v", path, len(frames), err)
	}

	notes := &countingNotifier{}
	sess, err := mapcmd.NewSession(mapcmd.Options{
		ViewWidth:     s.ViewWidth,
		ViewHeight:    s.ViewHeight,
		FogSize:       s.FogSize,
		Sizer:         s.faceSizer(),
		Notifier:      notes,
		Logger:        fileLogger(path),
		PixelLighting: s.PixelLighting,
		MapScroll:     s.MapScroll,
	})
	if err != nil {
		rep.Err = err
		return rep
	}
	p := newReplayer(sess, frames, s.ReplayFPS)
	if err := p.run(ctx); err != nil && rep.Err == nil {
		rep.Err = err
	}
	sess.Decoder.Flush()

	rep.fill(sess, p, notes)
	rep.Span = span
	if rep.Span == 0 {
		rep.Span = p.duration()
	}
	rep.Elapsed = time.Since(start)
	if keep {
		rep.session = sess
	}
	return rep
}

// replayOne replays a single file for replayFiles.
var replayOne = replayFile

// replayFiles replays every path, at most jobs at a time.
func replayFiles(ctx context.Context, paths []string, s Settings, keep bool) []*replayReport {
	jobs := s.Jobs
	if jobs < 1 {
		jobs = 1
	}
	reports := make([]*replayReport, len(paths))
	swg := sizedwaitgroup.New(jobs)
	for i, path := range paths {
		swg.Add()
		go func(i int, path string) {
			defer swg.Done()
			defer func() {
				if r := recover(); r != nil {
					logError("%s: panic: %v\n%s", path, r, debug.Stack())
					reports[i] = &replayReport{Path: path, Err: fmt.Errorf("panic: %v", r)}
				}
			}()
			reports[i] = replayOne(ctx, path, s, keep)
		}(i, path)
	}
	swg.Wait()
	return reports
}

// countingNotifier records update batches.
type countingNotifier struct {
	begins, ends  int
	full, scrolls int
}

func (n *countingNotifier) UpdateBegin() { n.begins++ }

func (n *countingNotifier) UpdateEnd(full, scroll bool) {
	n.ends++
	if full {
		n.full++
	}
	if scroll {
		n.scrolls++
	}
}
