package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"cfclient/mapcmd"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

// replayReport summarizes one replayed file.
type replayReport struct {
	Path     string         `json:"path"`
	Frames   int            `json:"frames"`
	Bytes    int            `json:"bytes"`
	Skipped  int            `json:"skipped"`
	Errors   int            `json:"errors"`
	Map      mapcmd.Stats   `json:"map"`
	Commands map[string]int `json:"commands"`
	Batches  int            `json:"batches"`
	Scrolls  int            `json:"scrolls"`
	NewMaps  int            `json:"newMaps"`
	BigFaces int            `json:"bigFaces"`
	Anims    int            `json:"syncAnims"`
	Digest   string         `json:"digest"`
	Elapsed  time.Duration  `json:"elapsed"`
	Span     time.Duration  `json:"span"`
	Err      error          `json:"-"`
	ErrText  string         `json:"error,omitempty"`

	session *mapcmd.Session
}

func (r *replayReport) fill(sess *mapcmd.Session, p *replayer, n *countingNotifier) {
	r.Frames = p.cur
	for _, m := range p.frames[:p.cur] {
		r.Bytes += len(m)
	}
	r.Skipped = p.skipped
	r.Errors = p.errors
	r.Map = sess.Decoder.Stats()
	r.Commands = sess.Commands()
	r.Batches = n.ends
	r.Scrolls = n.scrolls
	r.NewMaps = n.full
	r.BigFaces = sess.Store.BigFaces()
	r.Anims = sess.Anims.Active()
	d := sess.Store.Digest()
	r.Digest = hex.EncodeToString(d[:])
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		d = d.Round(time.Microsecond)
	} else {
		d = d.Round(time.Millisecond)
	}
	return durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
}

func (r *replayReport) write(w io.Writer) {
	fmt.Fprintf(w, "%s\n", r.Path)
	if r.Err != nil {
		fmt.Fprintf(w, "  error:    %v\n", r.Err)
	}
	fmt.Fprintf(w, "  frames:   %s (%s), %s skipped, %s errors\n",
		humanize.Comma(int64(r.Frames)), humanize.Bytes(uint64(r.Bytes)),
		humanize.Comma(int64(r.Skipped)), humanize.Comma(int64(r.Errors)))
	fmt.Fprintf(w, "  map:      %s messages, %s ops, %s protocol errors\n",
		humanize.Comma(int64(r.Map.Messages)), humanize.Comma(int64(r.Map.Ops)),
		humanize.Comma(int64(r.Map.Errors)))
	fmt.Fprintf(w, "  formats:  map1a %d, map2 %d, mapextended %d\n",
		r.Map.ByFormat[mapcmd.FormatLegacy], r.Map.ByFormat[mapcmd.FormatGeneralized],
		r.Map.ByFormat[mapcmd.FormatExtended])
	fmt.Fprintf(w, "  batches:  %s (%d scrolls, %d new maps)\n",
		humanize.Comma(int64(r.Batches)), r.Scrolls, r.NewMaps)
	fmt.Fprintf(w, "  state:    %d big faces outside view, %d sync animations\n", r.BigFaces, r.Anims)
	if len(r.Commands) > 0 {
		names := make([]string, 0, len(r.Commands))
		for name := range r.Commands {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(w, "  commands:")
		for _, name := range names {
			fmt.Fprintf(w, " %s=%d", name, r.Commands[name])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  time:     %s elapsed, %s recorded\n", formatDuration(r.Elapsed), formatDuration(r.Span))
	fmt.Fprintf(w, "  digest:   %s\n", r.Digest)
}

// saveReports writes the reports as JSON.
func saveReports(path string, reports []*replayReport) error {
	for _, r := range reports {
		if r.Err != nil {
			r.ErrText = r.Err.Error()
		}
	}
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
