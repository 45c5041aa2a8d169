package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ICMM2025/icmm-server/internal/constants"
	"github.com/ICMM2025/icmm-server/internal/logger"
	"github.com/ICMM2025/icmm-server/internal/models"
	"github.com/ICMM2025/icmm-server/internal/repository"
	"github.com/ICMM2025/icmm-server/internal/storage"
	"github.com/ICMM2025/icmm-server/internal/vision"
)

// VirtualRunService 线上跑成绩提交
type VirtualRunService struct {
	runRepo  repository.VirtualRunRepository
	uploader storage.Uploader
	analyzer vision.Analyzer
}

// NewVirtualRunService 创建服务；analyzer 为空时跳过识别
func NewVirtualRunService(runRepo repository.VirtualRunRepository, uploader storage.Uploader, analyzer vision.Analyzer) *VirtualRunService {
	return &VirtualRunService{runRepo: runRepo, uploader: uploader, analyzer: analyzer}
}

// Submit 校验报名信息、上传截图、识别成绩并落库
func (s *VirtualRunService) Submit(ctx context.Context, userName, email string, file *StagedFile) (*models.VirtualRun, error) {
	if file == nil {
		return nil, ErrNoImageUploaded
	}
	runner, err := s.runRepo.FindRunner(strings.TrimSpace(userName), strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if runner == nil {
		return nil, ErrRunnerNotFound
	}

	now := time.Now().UTC()
	stamp := fmt.Sprintf("%s%03dZ", now.Format("20060102T150405"), now.Nanosecond()/int(time.Millisecond))
	url, err := s.uploader.Upload(ctx, storage.UploadInput{
		FilePath:    file.Path,
		ContentType: file.ContentType,
		Folder:      constants.FolderVirtualRun,
		PublicID:    fmt.Sprintf("virtual_run/%d_%s", runner.RunnerID, stamp),
		MaxWidth:    constants.UploadMaxWidth,
		MaxHeight:   constants.UploadMaxHeight,
	})
	if err != nil {
		logger.Errorw("virtual_run_upload_failed", "runner_id", runner.RunnerID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrEvidenceUploadFailed, err)
	}

	analysis := s.analyze(ctx, runner.RunnerID, file)
	run := &models.VirtualRun{
		RunnerID:          runner.RunnerID,
		UserUploadPicURL:  url,
		AIDate:            analysis.Date,
		AIDistance:        analysis.Distance,
		AITotalTime:       analysis.TotalTime,
		ConfirmedDate:     analysis.Date,
		ConfirmedDistance: analysis.Distance,
		ConfirmedTime:     analysis.TotalTime,
		Status:            models.VirtualRunStatusUploaded,
	}
	if err := s.runRepo.Create(run); err != nil {
		return nil, err
	}
	logger.Infow("virtual_run_uploaded", "runner_id", runner.RunnerID, "virtual_run_id", run.VirtualRunID)
	return run, nil
}

// analyze 识别失败不阻断提交，字段保持为空
func (s *VirtualRunService) analyze(ctx context.Context, runnerID uint, file *StagedFile) vision.RunAnalysis {
	if s.analyzer == nil {
		return vision.RunAnalysis{}
	}
	content, err := file.Read()
	if err != nil {
		logger.Warnw("virtual_run_read_failed", "runner_id", runnerID, "error", err)
		return vision.RunAnalysis{}
	}
	text, err := s.analyzer.Describe(ctx, content, file.ContentType, vision.RunResultPrompt)
	if err != nil {
		logger.Warnw("virtual_run_analyze_failed", "runner_id", runnerID, "error", err)
		return vision.RunAnalysis{}
	}
	analysis := vision.ParseRunResult(text)
	if analysis.Date == nil && analysis.Distance == nil && analysis.TotalTime == nil {
		logger.Warnw("virtual_run_analysis_empty", "runner_id", runnerID)
	}
	return analysis
}

// List 后台查看提交记录
func (s *VirtualRunService) List(filter repository.VirtualRunListFilter) ([]models.VirtualRun, int64, error) {
	return s.runRepo.List(filter)
}

// RegisterRunner 登记跑者（后台或批量导入）
func (s *VirtualRunService) RegisterRunner(userName, email string) (*models.Runner, error) {
	userName = strings.TrimSpace(userName)
	email = strings.TrimSpace(email)
	if userName == "" || email == "" {
		return nil, ErrInputMissing
	}
	existing, err := s.runRepo.FindRunner(userName, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	runner := &models.Runner{UserName: userName, Email: email}
	if err := s.runRepo.CreateRunner(runner); err != nil {
		return nil, err
	}
	return runner, nil
}
