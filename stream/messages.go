// Package stream validates batches of HL7 messages read incrementally
// from an io.Reader, without loading the whole input into memory.
//
// The input may be MLLP-framed, newline-delimited (one segment per
// line, messages separated by a blank line), or a plain concatenation
// where each MSH segment starts a new message. All three forms are
// detected automatically.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	hl7validator "github.com/gohl7/validator"
)

// ValidateFunc validates a single raw HL7 message. engine.Validator.Validate
// satisfies this signature.
type ValidateFunc func(ctx context.Context, raw []byte) (*hl7validator.Report, error)

// MessageValidator validates a stream of HL7 messages one at a time.
type MessageValidator struct {
	validate    ValidateFunc
	bufferSize  int
	workerCount int
}

// NewMessageValidator creates a stream validator backed by the given
// validation function.
func NewMessageValidator(fn ValidateFunc) *MessageValidator {
	return &MessageValidator{
		validate:    fn,
		bufferSize:  16,
		workerCount: 4,
	}
}

// WithBufferSize sets the result channel buffer size.
func (v *MessageValidator) WithBufferSize(n int) *MessageValidator {
	if n > 0 {
		v.bufferSize = n
	}
	return v
}

// WithWorkerCount sets the number of workers used by ValidateStreamParallel.
func (v *MessageValidator) WithWorkerCount(n int) *MessageValidator {
	if n > 0 {
		v.workerCount = n
	}
	return v
}

// MessageResult is the outcome of validating one message from a stream.
type MessageResult struct {
	// Index is the zero-based position of the message in the stream.
	Index int

	// ControlID is the MSH-10 message control ID, when present.
	ControlID string

	// Report holds the validation findings. Nil when Err is a read or
	// parse failure that prevented validation.
	Report *hl7validator.Report

	// Err is set when the message could not be validated at all.
	Err error
}

// ValidateStream reads messages from r and validates them sequentially,
// sending one result per message on the returned channel. The channel
// is closed when the input is exhausted or the context is cancelled.
func (v *MessageValidator) ValidateStream(ctx context.Context, r io.Reader) <-chan *MessageResult {
	out := make(chan *MessageResult, v.bufferSize)

	go func() {
		defer close(out)

		mr := newMessageReader(r)
		index := 0
		for {
			raw, err := mr.next()
			if err == io.EOF {
				return
			}
			if err != nil {
				sendResult(ctx, out, &MessageResult{
					Index: index,
					Err:   fmt.Errorf("reading message stream: %w", err),
				})
				return
			}

			select {
			case <-ctx.Done():
				return
			default:
			}

			report, verr := v.validate(ctx, []byte(raw))
			if !sendResult(ctx, out, &MessageResult{
				Index:     index,
				ControlID: controlID(raw),
				Report:    report,
				Err:       verr,
			}) {
				return
			}
			index++
		}
	}()

	return out
}

// ValidateStreamParallel reads messages from r and validates them on a
// worker pool. Results are re-ordered so the channel still emits them in
// stream order.
func (v *MessageValidator) ValidateStreamParallel(ctx context.Context, r io.Reader) <-chan *MessageResult {
	out := make(chan *MessageResult, v.bufferSize)

	go func() {
		defer close(out)

		type work struct {
			index int
			raw   string
		}
		workChan := make(chan work, v.workerCount)
		resultChan := make(chan *MessageResult, v.workerCount)

		var wg sync.WaitGroup
		for i := 0; i < v.workerCount; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for w := range workChan {
					report, err := v.validate(ctx, []byte(w.raw))
					res := &MessageResult{
						Index:     w.index,
						ControlID: controlID(w.raw),
						Report:    report,
						Err:       err,
					}
					select {
					case resultChan <- res:
					case <-ctx.Done():
						return
					}
				}
			}()
		}

		// Reader feeds the workers while they run.
		readErr := make(chan *MessageResult, 1)
		go func() {
			defer close(workChan)
			mr := newMessageReader(r)
			index := 0
			for {
				raw, err := mr.next()
				if err == io.EOF {
					return
				}
				if err != nil {
					readErr <- &MessageResult{
						Index: index,
						Err:   fmt.Errorf("reading message stream: %w", err),
					}
					return
				}
				select {
				case workChan <- work{index: index, raw: raw}:
					index++
				case <-ctx.Done():
					return
				}
			}
		}()

		go func() {
			wg.Wait()
			close(resultChan)
		}()

		// Re-order: hold results until their predecessors have been sent.
		pending := make(map[int]*MessageResult)
		next := 0
		for res := range resultChan {
			pending[res.Index] = res
			for {
				ready, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				if !sendResult(ctx, out, ready) {
					return
				}
				next++
			}
		}

		// Stragglers can remain when a worker exited on cancellation.
		if len(pending) > 0 {
			indexes := make([]int, 0, len(pending))
			for i := range pending {
				indexes = append(indexes, i)
			}
			sort.Ints(indexes)
			for _, i := range indexes {
				if !sendResult(ctx, out, pending[i]) {
					return
				}
			}
		}

		select {
		case res := <-readErr:
			sendResult(ctx, out, res)
		default:
		}
	}()

	return out
}

func sendResult(ctx context.Context, out chan<- *MessageResult, res *MessageResult) bool {
	select {
	case out <- res:
		return true
	case <-ctx.Done():
		return false
	}
}

// controlID extracts MSH-10 from the raw message, best effort.
func controlID(raw string) string {
	end := strings.IndexByte(raw, '\r')
	if end < 0 {
		end = len(raw)
	}
	header := raw[:end]
	if len(header) < 4 || !strings.HasPrefix(header, "MSH") {
		return ""
	}
	fields := strings.Split(header, string(header[3]))
	if len(fields) <= 9 {
		return ""
	}
	return fields[9]
}

// StreamResult aggregates the results of a whole stream.
type StreamResult struct {
	TotalMessages        int
	MessagesWithErrors   int
	MessagesWithWarnings int
	TotalFindings        int

	// ProcessingErrors holds read and parse failures, not validation findings.
	ProcessingErrors []error

	// Findings maps message index to the findings reported for it.
	Findings map[int][]hl7validator.Finding
}

// Aggregate drains a result channel into a single StreamResult.
// Pooled reports are released once their findings have been copied out.
func Aggregate(results <-chan *MessageResult) *StreamResult {
	agg := &StreamResult{
		Findings: make(map[int][]hl7validator.Finding),
	}

	for res := range results {
		agg.TotalMessages++

		if res.Err != nil {
			agg.ProcessingErrors = append(agg.ProcessingErrors,
				fmt.Errorf("message %d: %w", res.Index, res.Err))
		}
		if res.Report == nil {
			continue
		}

		if len(res.Report.Findings) > 0 {
			findings := make([]hl7validator.Finding, len(res.Report.Findings))
			copy(findings, res.Report.Findings)
			agg.Findings[res.Index] = findings
			agg.TotalFindings += len(findings)
		}
		if res.Report.HasErrors() {
			agg.MessagesWithErrors++
		}
		if res.Report.HasWarnings() {
			agg.MessagesWithWarnings++
		}

		res.Report.Release()
	}

	return agg
}

// HasErrors reports whether any message failed validation or processing.
func (r *StreamResult) HasErrors() bool {
	return r.MessagesWithErrors > 0 || len(r.ProcessingErrors) > 0
}

// Summary returns a one-line human-readable summary.
func (r *StreamResult) Summary() string {
	return fmt.Sprintf("%d messages: %d with errors, %d with warnings, %d findings, %d processing errors",
		r.TotalMessages, r.MessagesWithErrors, r.MessagesWithWarnings,
		r.TotalFindings, len(r.ProcessingErrors))
}

// messageReader splits a reader into individual HL7 messages. A new
// message starts at an MSH segment or after a blank line; MLLP framing
// bytes are stripped.
type messageReader struct {
	sc   *bufio.Scanner
	segs []string
	done bool
}

func newMessageReader(r io.Reader) *messageReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	sc.Split(scanSegmentLines)
	return &messageReader{sc: sc}
}

// next returns the next complete message, or io.EOF when the stream
// is exhausted.
func (m *messageReader) next() (string, error) {
	if m.done {
		return m.flush()
	}

	for m.sc.Scan() {
		line := stripFraming(m.sc.Text())
		switch {
		case line == "":
			if msg, err := m.flush(); err == nil {
				return msg, nil
			}
		case strings.HasPrefix(line, "MSH") && len(m.segs) > 0:
			msg, _ := m.flush()
			m.segs = append(m.segs, line)
			return msg, nil
		default:
			m.segs = append(m.segs, line)
		}
	}

	m.done = true
	if err := m.sc.Err(); err != nil {
		return "", err
	}
	return m.flush()
}

func (m *messageReader) flush() (string, error) {
	if len(m.segs) == 0 {
		return "", io.EOF
	}
	msg := strings.Join(m.segs, "\r")
	m.segs = m.segs[:0]
	return msg, nil
}

// stripFraming removes MLLP start/end block bytes from a segment line.
func stripFraming(line string) string {
	line = strings.Trim(line, "\x0b\x1c")
	return strings.TrimRight(line, " ")
}

// scanSegmentLines is a bufio.SplitFunc that treats CR, LF and CRLF as
// line terminators. HL7 segments end in a bare CR, which bufio.ScanLines
// does not handle.
func scanSegmentLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance = i + 1
		if data[i] == '\r' {
			if advance == len(data) && !atEOF {
				// Might be a CRLF split across reads.
				return 0, nil, nil
			}
			if advance < len(data) && data[advance] == '\n' {
				advance++
			}
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
