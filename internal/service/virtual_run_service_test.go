package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ICMM2025/icmm-server/internal/constants"
	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/repository"
)

type fakeAnalyzer struct {
	text string
	err  error
}

func (f *fakeAnalyzer) Describe(_ context.Context, _ []byte, _ string, _ string) (string, error) {
	return f.text, f.err
}

func TestVirtualRunSubmitParsesAnalysis(t *testing.T) {
	db := openServiceTestDB(t)
	uploader := &fakeUploader{}
	analyzer := &fakeAnalyzer{text: "Here you go:\n```json\n{\"date\":\"2025-06-08\",\"distance\":\"21.28km\",\"totalTime\":\"2:29:03\"}\n```"}
	svc := NewVirtualRunService(repository.NewVirtualRunRepository(db), uploader, analyzer)

	runner, err := svc.RegisterRunner("Nok", "nok@example.com")
	if err != nil {
		t.Fatalf("register runner failed: %v", err)
	}
	run, err := svc.Submit(context.Background(), "Nok", "nok@example.com", writeStagedFile(t))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if run.RunnerID != runner.RunnerID || run.Status != models.VirtualRunStatusUploaded {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.AIDistance == nil || *run.AIDistance != 21.28 || run.ConfirmedDistance == nil || *run.ConfirmedDistance != 21.28 {
		t.Fatalf("unexpected distance: %+v", run)
	}
	if run.AITotalTime == nil || *run.AITotalTime != "2:29:03" || run.AIDate == nil {
		t.Fatalf("unexpected analysis fields: %+v", run)
	}
	input := uploader.inputs[0]
	if input.Folder != constants.FolderVirtualRun || !strings.HasPrefix(input.PublicID, "virtual_run/") || input.MaxWidth != 1000 {
		t.Fatalf("unexpected upload input: %+v", input)
	}
}

func TestVirtualRunSubmitToleratesBadAnalysis(t *testing.T) {
	db := openServiceTestDB(t)
	svc := NewVirtualRunService(repository.NewVirtualRunRepository(db), &fakeUploader{}, &fakeAnalyzer{text: "no json here"})
	if _, err := svc.RegisterRunner("Nok", "nok@example.com"); err != nil {
		t.Fatalf("register runner failed: %v", err)
	}
	run, err := svc.Submit(context.Background(), "Nok", "nok@example.com", writeStagedFile(t))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if run.AIDate != nil || run.AIDistance != nil || run.AITotalTime != nil {
		t.Fatalf("expected nil analysis fields: %+v", run)
	}
}

func TestVirtualRunSubmitErrors(t *testing.T) {
	db := openServiceTestDB(t)
	uploader := &fakeUploader{}
	svc := NewVirtualRunService(repository.NewVirtualRunRepository(db), uploader, &fakeAnalyzer{err: errForced})

	if _, err := svc.Submit(context.Background(), "Ghost", "ghost@example.com", writeStagedFile(t)); !errors.Is(err, ErrRunnerNotFound) {
		t.Fatalf("expected runner not found, got %v", err)
	}
	if _, err := svc.RegisterRunner("Nok", "nok@example.com"); err != nil {
		t.Fatalf("register runner failed: %v", err)
	}
	uploader.err = errForced
	if _, err := svc.Submit(context.Background(), "Nok", "nok@example.com", writeStagedFile(t)); !errors.Is(err, ErrEvidenceUploadFailed) {
		t.Fatalf("expected upload failure, got %v", err)
	}
	uploader.err = nil
	run, err := svc.Submit(context.Background(), "Nok", "nok@example.com", writeStagedFile(t))
	if err != nil {
		t.Fatalf("analyzer failure must not block submission: %v", err)
	}
	runs, total, err := svc.List(repository.VirtualRunListFilter{})
	if err != nil || total != 1 || runs[0].VirtualRunID != run.VirtualRunID {
		t.Fatalf("unexpected list: total=%d err=%v", total, err)
	}
}
