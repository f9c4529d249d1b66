package stream

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	hl7validator "github.com/gohl7/validator"
)

func testMessage(controlID string) string {
	return fmt.Sprintf("MSH|^~\\&|SEND|FAC|RCV|FAC|20240101120000||ADT^A01^ADT_A01|%s|P|2.4\rPID|1||12345\r", controlID)
}

// okValidator returns a clean report for every message.
func okValidator(_ context.Context, _ []byte) (*hl7validator.Report, error) {
	return hl7validator.NewReport(), nil
}

func collect(ch <-chan *MessageResult) []*MessageResult {
	var out []*MessageResult
	for res := range ch {
		out = append(out, res)
	}
	return out
}

func TestValidateStreamSequential(t *testing.T) {
	input := testMessage("MSG001") + testMessage("MSG002") + testMessage("MSG003")

	v := NewMessageValidator(okValidator)
	results := collect(v.ValidateStream(context.Background(), strings.NewReader(input)))

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Errorf("result %d: unexpected error %v", i, res.Err)
		}
		if res.Index != i {
			t.Errorf("result %d: index = %d", i, res.Index)
		}
	}
	if results[0].ControlID != "MSG001" || results[2].ControlID != "MSG003" {
		t.Errorf("control IDs = %q, %q, %q",
			results[0].ControlID, results[1].ControlID, results[2].ControlID)
	}
}

func TestValidateStreamSplitting(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{
			name:  "blank line separated",
			input: "MSH|^~\\&|A|B|C|D|1||ADT^A01|M1|P|2.4\nPID|1\n\nMSH|^~\\&|A|B|C|D|1||ADT^A01|M2|P|2.4\nPID|2\n",
			want:  2,
		},
		{
			name:  "MSH boundary without separator",
			input: "MSH|^~\\&|A|B|C|D|1||ADT^A01|M1|P|2.4\rPID|1\rMSH|^~\\&|A|B|C|D|1||ADT^A01|M2|P|2.4\rPID|2",
			want:  2,
		},
		{
			name:  "MLLP framed",
			input: "\x0bMSH|^~\\&|A|B|C|D|1||ADT^A01|M1|P|2.4\rPID|1\r\x1c\r\x0bMSH|^~\\&|A|B|C|D|1||ADT^A01|M2|P|2.4\r\x1c\r",
			want:  2,
		},
		{
			name:  "single message no trailing newline",
			input: "MSH|^~\\&|A|B|C|D|1||ADT^A01|M1|P|2.4\rPID|1",
			want:  1,
		},
		{
			name:  "empty input",
			input: "",
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewMessageValidator(okValidator)
			results := collect(v.ValidateStream(context.Background(), strings.NewReader(tt.input)))
			if len(results) != tt.want {
				t.Fatalf("expected %d messages, got %d", tt.want, len(results))
			}
			for _, res := range results {
				if res.Err != nil {
					t.Errorf("message %d: %v", res.Index, res.Err)
				}
			}
		})
	}
}

func TestValidateStreamParallelOrder(t *testing.T) {
	var input strings.Builder
	for i := 0; i < 20; i++ {
		input.WriteString(testMessage(fmt.Sprintf("MSG%03d", i)))
	}

	v := NewMessageValidator(okValidator).WithWorkerCount(4)
	results := collect(v.ValidateStreamParallel(context.Background(), strings.NewReader(input.String())))

	if len(results) != 20 {
		t.Fatalf("expected 20 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Index != i {
			t.Fatalf("result %d out of order: index = %d", i, res.Index)
		}
		want := fmt.Sprintf("MSG%03d", i)
		if res.ControlID != want {
			t.Errorf("result %d: control ID = %q, want %q", i, res.ControlID, want)
		}
	}
}

func TestValidateStreamValidationError(t *testing.T) {
	failOn := "MSG002"
	validate := func(_ context.Context, raw []byte) (*hl7validator.Report, error) {
		report := hl7validator.NewReport()
		if strings.Contains(string(raw), failOn) {
			report.AddError(hl7validator.FindingMissingSegment, "required segment EVN is missing",
				hl7validator.NewLocation("EVN", 1))
		}
		return report, nil
	}

	input := testMessage("MSG001") + testMessage("MSG002")
	v := NewMessageValidator(validate)
	results := collect(v.ValidateStream(context.Background(), strings.NewReader(input)))

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Report.Valid {
		t.Error("first message should be valid")
	}
	if results[1].Report.Valid {
		t.Error("second message should be invalid")
	}
}

func TestValidateStreamCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var input strings.Builder
	for i := 0; i < 100; i++ {
		input.WriteString(testMessage(fmt.Sprintf("MSG%03d", i)))
	}

	v := NewMessageValidator(okValidator)
	results := collect(v.ValidateStream(ctx, strings.NewReader(input.String())))

	if len(results) >= 100 {
		t.Errorf("expected early termination, got %d results", len(results))
	}
}

type failingReader struct {
	data string
	read bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.read {
		r.read = true
		return copy(p, r.data), nil
	}
	return 0, fmt.Errorf("connection reset")
}

func TestValidateStreamReadError(t *testing.T) {
	r := &failingReader{data: testMessage("MSG001")}
	v := NewMessageValidator(okValidator)
	results := collect(v.ValidateStream(context.Background(), r))

	var sawErr bool
	for _, res := range results {
		if res.Err != nil {
			sawErr = true
		}
	}
	if !sawErr {
		t.Error("expected a processing error from the failing reader")
	}
}

func TestAggregate(t *testing.T) {
	validate := func(_ context.Context, raw []byte) (*hl7validator.Report, error) {
		report := hl7validator.NewReport()
		switch {
		case strings.Contains(string(raw), "MSG002"):
			report.AddError(hl7validator.FindingInvalidCode, "value \"Z99\" is not in table HL70003",
				hl7validator.NewLocation("EVN", 1).AtField(1))
		case strings.Contains(string(raw), "MSG003"):
			report.AddWarning(hl7validator.FindingFieldTooLong, "field exceeds maximum length",
				hl7validator.NewLocation("PID", 2).AtField(5))
		}
		return report, nil
	}

	input := testMessage("MSG001") + testMessage("MSG002") + testMessage("MSG003")
	v := NewMessageValidator(validate)
	agg := Aggregate(v.ValidateStream(context.Background(), strings.NewReader(input)))

	if agg.TotalMessages != 3 {
		t.Errorf("TotalMessages = %d, want 3", agg.TotalMessages)
	}
	if agg.MessagesWithErrors != 1 {
		t.Errorf("MessagesWithErrors = %d, want 1", agg.MessagesWithErrors)
	}
	if agg.MessagesWithWarnings != 1 {
		t.Errorf("MessagesWithWarnings = %d, want 1", agg.MessagesWithWarnings)
	}
	if agg.TotalFindings != 2 {
		t.Errorf("TotalFindings = %d, want 2", agg.TotalFindings)
	}
	if !agg.HasErrors() {
		t.Error("HasErrors should be true")
	}
	if len(agg.Findings[1]) != 1 {
		t.Errorf("expected one finding for message 1, got %d", len(agg.Findings[1]))
	}
	if s := agg.Summary(); !strings.Contains(s, "3 messages") {
		t.Errorf("unexpected summary: %s", s)
	}
}

func TestAggregateProcessingErrors(t *testing.T) {
	results := make(chan *MessageResult, 2)
	results <- &MessageResult{Index: 0, Report: hl7validator.NewReport()}
	results <- &MessageResult{Index: 1, Err: io.ErrUnexpectedEOF}
	close(results)

	agg := Aggregate(results)
	if len(agg.ProcessingErrors) != 1 {
		t.Fatalf("expected 1 processing error, got %d", len(agg.ProcessingErrors))
	}
	if !agg.HasErrors() {
		t.Error("HasErrors should be true")
	}
}
