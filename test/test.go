package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bitrise-io/bitrise/models"
	logV2 "github.com/bitrise-io/go-utils/v2/log"
	"github.com/bitrise-io/go-utils/v2/retryhttp"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/format"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testasset"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
	"github.com/docker/go-units"
	"github.com/hashicorp/go-retryablehttp"
)

// maxTotalReportSize limits the total size of all converted reports uploaded in a single run
const maxTotalReportSize = 100 * units.MiB

// FileInfo ...
type FileInfo struct {
	FileName string `json:"filename"`
	FileSize int    `json:"filesize"`
}

// UploadURL ...
type UploadURL struct {
	FileName string `json:"filename"`
	URL      string `json:"upload_url"`
}

// UploadRequest ...
type UploadRequest struct {
	Name        string                    `json:"name"`
	Format      string                    `json:"format"`
	ContentType string                    `json:"content_type"`
	Step        models.TestResultStepInfo `json:"step_info"`
	Assets      []FileInfo                `json:"assets"`
	FileInfo
}

// UploadResponse ...
type UploadResponse struct {
	ID     string      `json:"id"`
	Assets []UploadURL `json:"assets"`
	UploadURL
}

// Asset is a test case attachment uploaded next to the report.
type Asset struct {
	FileName string
	Data     []byte
}

// Result is a converted test report.
type Result struct {
	Name     string
	Format   format.Format
	Content  []byte
	Assets   []Asset
	StepInfo models.TestResultStepInfo
}

// Results ...
type Results []Result

// NewResult collects the attachments of the run as assets. Zip archives carry their attachments,
// no assets are collected for them.
func NewResult(name string, f format.Format, content []byte, run *testreport.TestRun, stepInfo models.TestResultStepInfo) Result {
	result := Result{
		Name:     name,
		Format:   f,
		Content:  content,
		StepInfo: stepInfo,
	}
	if run == nil || f == format.ZipArchive {
		return result
	}

	seen := map[string]bool{}
	for _, suite := range run.Suites {
		result.Assets = appendAssets(result.Assets, suite.TestCases, seen)
	}
	return result
}

func appendAssets(assets []Asset, cases []testreport.TestCaseRun, seen map[string]bool) []Asset {
	for _, tc := range cases {
		for _, attachment := range tc.Attachments {
			fileName := testasset.AttachmentPath(tc.InstanceID, attachment.Name)
			if seen[fileName] {
				continue
			}
			seen[fileName] = true
			assets = append(assets, Asset{FileName: fileName, Data: attachment.Data})
		}
		assets = appendAssets(assets, tc.InnerResults, seen)
	}
	return assets
}

func httpCall(apiToken, method, url string, input io.Reader, output interface{}, logger logV2.Logger) error {
	if apiToken != "" {
		url = url + "/" + apiToken
	}
	req, err := retryablehttp.NewRequest(method, url, input)
	if err != nil {
		return err
	}

	client := retryhttp.NewClient(logger)
	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warnf("Failed to close body: %s", err)
		}
	}()

	if resp.StatusCode < 200 || 299 < resp.StatusCode {
		bodyData, err := io.ReadAll(resp.Body)
		if err != nil {
			logger.Warnf("Failed to read response: %s", err)
			return fmt.Errorf("unsuccessful status code: %d", resp.StatusCode)
		}
		return fmt.Errorf("unsuccessful status code: %d, response: %s", resp.StatusCode, bodyData)
	}

	if output != nil {
		return json.NewDecoder(resp.Body).Decode(&output)
	}
	return nil
}

// Upload ...
func (results Results) Upload(apiToken, endpointBaseURL, appSlug, buildSlug string, logger logV2.Logger) error {
	if totalSize := results.calculateTotalSize(); totalSize > maxTotalReportSize {
		return fmt.Errorf("the total size of the test reports (%s) exceeds the maximum allowed size of %s", units.BytesSize(float64(totalSize)), units.BytesSize(maxTotalReportSize))
	}

	for _, result := range results {
		logger.Printf("Uploading: %s (%s, %s)", result.Name, result.Format, units.HumanSize(float64(len(result.Content))))

		contentType, _ := format.ContentType(result.Format)
		uploadReq := UploadRequest{
			FileInfo: FileInfo{
				FileName: "test_result" + result.Format.Extension(),
				FileSize: len(result.Content),
			},
			Name:        result.Name,
			Format:      result.Format.String(),
			ContentType: contentType,
			Step:        result.StepInfo,
		}
		for _, asset := range result.Assets {
			uploadReq.Assets = append(uploadReq.Assets, FileInfo{
				FileName: asset.FileName,
				FileSize: len(asset.Data),
			})
		}

		uploadRequestBodyData, err := json.Marshal(uploadReq)
		if err != nil {
			return fmt.Errorf("failed to json encode upload request: %w", err)
		}

		var (
			uploadResponse   UploadResponse
			uploadRequestURL = fmt.Sprintf("%s/apps/%s/builds/%s/test_reports", endpointBaseURL, appSlug, buildSlug)
		)
		if err := httpCall(apiToken, http.MethodPost, uploadRequestURL, bytes.NewReader(uploadRequestBodyData), &uploadResponse, logger); err != nil {
			return fmt.Errorf("failed to initialise test report: %w", err)
		}

		if err := httpCall("", http.MethodPut, uploadResponse.URL, bytes.NewReader(result.Content), nil, logger); err != nil {
			return fmt.Errorf("failed to upload test report: %w", err)
		}

		for _, upload := range uploadResponse.Assets {
			for _, asset := range result.Assets {
				if asset.FileName == upload.FileName {
					if err := httpCall("", http.MethodPut, upload.URL, bytes.NewReader(asset.Data), nil, logger); err != nil {
						return fmt.Errorf("failed to upload test report attachment (%s): %w", asset.FileName, err)
					}
					break
				}
			}
		}

		var uploadPatchURL = fmt.Sprintf("%s/apps/%s/builds/%s/test_reports/%s", endpointBaseURL, appSlug, buildSlug, uploadResponse.ID)
		if err := httpCall(apiToken, http.MethodPatch, uploadPatchURL, strings.NewReader(`{"uploaded":true}`), nil, logger); err != nil {
			return fmt.Errorf("failed to finalise test report: %w", err)
		}
	}

	return nil
}

func (results Results) calculateTotalSize() int {
	totalSize := 0
	for _, result := range results {
		totalSize += len(result.Content)
		for _, asset := range result.Assets {
			totalSize += len(asset.Data)
		}
	}
	return totalSize
}
