package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bitrise-io/bitrise/models"
	"github.com/bitrise-io/go-steputils/stepconf"
	"github.com/bitrise-io/go-steputils/tools"
	"github.com/bitrise-io/go-utils/fileutil"
	"github.com/bitrise-io/go-utils/log"
	"github.com/bitrise-io/go-utils/pathutil"
	fileutilV2 "github.com/bitrise-io/go-utils/v2/fileutil"
	logV2 "github.com/bitrise-io/go-utils/v2/log"
	pathutilV2 "github.com/bitrise-io/go-utils/v2/pathutil"
	"github.com/bitrise-steplib/steps-test-report-interchange/fileredactor"
	"github.com/bitrise-steplib/steps-test-report-interchange/reportpath"
	"github.com/bitrise-steplib/steps-test-report-interchange/test"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/converters"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/format"
	"github.com/bitrise-steplib/steps-test-report-interchange/test/testreport"
)

const (
	convertedReportPathEnvKey     = "BITRISE_CONVERTED_TEST_REPORT_PATH"
	convertedReportPathListEnvKey = "BITRISE_CONVERTED_TEST_REPORT_PATH_LIST"
)

var stepInfo = models.TestResultStepInfo{
	ID:      "test-report-interchange",
	Title:   "Test Report Interchange",
	Version: "1.0.0",
}

// Config ...
type Config struct {
	TestReportPaths string          `env:"test_report_paths,required"`
	ContentType     string          `env:"content_type"`
	OutputFormat    string          `env:"output_format,opt[trx,junit,xunit,nunit,ctrf,zip]"`
	ZipInnerFormat  string          `env:"zip_inner_format,opt[trx,junit,xunit,nunit,ctrf]"`
	OutputDir       string          `env:"output_dir,required"`
	SecretsToRedact stepconf.Secret `env:"secrets_to_redact"`
	BuildSlug       string          `env:"BITRISE_BUILD_SLUG"`
	AppSlug         string          `env:"BITRISE_APP_SLUG"`
	AddonAPIBaseURL string          `env:"addon_api_base_url"`
	AddonAPIToken   stepconf.Secret `env:"addon_api_token"`
	DebugMode       bool            `env:"debug_mode,opt[true,false]"`
}

// convertedReport is a test report written to the output directory.
type convertedReport struct {
	Name   string
	Path   string
	Format format.Format
	Run    *testreport.TestRun
}

func fail(format string, v ...interface{}) {
	log.Errorf(format, v...)
	os.Exit(1)
}

func main() {
	var config Config
	if err := stepconf.Parse(&config); err != nil {
		fail("Issue with input: %s", err)
	}

	stepconf.Print(config)
	fmt.Println()
	log.SetEnableDebugLog(config.DebugMode)

	logger := logV2.NewLogger()
	logger.EnableDebugLog(config.DebugMode)

	targetFormat := format.Parse(config.OutputFormat)
	if targetFormat == format.UnknownFormat {
		targetFormat = format.MicrosoftTrx
	}

	reportPaths, err := reportpath.NewProcessor(pathutilV2.NewPathModifier(), pathutilV2.NewPathChecker()).ProcessReportPaths(config.TestReportPaths)
	if err != nil {
		fail("Issue with input test_report_paths: %s", err)
	}
	if len(reportPaths) == 0 {
		fail("No test report to convert")
	}

	absOutputDir, err := pathutil.AbsPath(config.OutputDir)
	if err != nil {
		fail("Failed to expand path: %s, error: %s", config.OutputDir, err)
	}
	if err := os.MkdirAll(absOutputDir, 0755); err != nil {
		fail("Failed to create output dir (%s), error: %s", absOutputDir, err)
	}

	target, err := outputConverter(targetFormat, format.Parse(config.ZipInnerFormat))
	if err != nil {
		fail("%s", err)
	}

	log.Infof("Converting test reports to %s", targetFormat)

	var reports []convertedReport
	usedPaths := map[string]bool{}
	for _, reportPath := range reportPaths {
		report, err := convertReport(reportPath, config.ContentType, target, targetFormat, absOutputDir, usedPaths)
		if err != nil {
			fail("%s", err)
		}
		reports = append(reports, report)
	}

	secrets := fileredactor.ParseSecrets(string(config.SecretsToRedact))
	if len(secrets) > 0 {
		if err := redactReports(reports, secrets, logger); err != nil {
			fail("%s", err)
		}
	}

	if err := exportOutputs(reports); err != nil {
		fail("%s", err)
	}

	uploadReports(reports, config, logger)

	fmt.Println()
	log.Donef("Success")
}

func outputConverter(target, zipInner format.Format) (converters.Codec, error) {
	if target == format.ZipArchive {
		return converters.NewZipArchive(zipInner), nil
	}
	return converters.ForFormat(target)
}

// sourceConverter picks the converter of a report: a format pinned to the path wins over
// the content type input, detection is the fallback.
func sourceConverter(reportPath reportpath.ReportPath, contentType string, data []byte) (converters.Codec, format.Format, error) {
	if reportPath.Format != format.UnknownFormat {
		codec, err := converters.ForFormat(reportPath.Format)
		return codec, reportPath.Format, err
	}
	if strings.TrimSpace(contentType) != "" {
		f := format.FromContentType(contentType)
		codec, err := converters.ForContentType(contentType)
		return codec, f, err
	}
	return converters.Detect(data)
}

func convertReport(reportPath reportpath.ReportPath, contentType string, target converters.Codec, targetFormat format.Format, outputDir string, usedPaths map[string]bool) (convertedReport, error) {
	fmt.Println()
	log.Printf("Test report: %s", reportPath.Path)

	data, err := fileutil.ReadBytesFromFile(reportPath.Path)
	if err != nil {
		return convertedReport{}, fmt.Errorf("failed to read test report (%s): %w", reportPath.Path, err)
	}

	source, sourceFormat, err := sourceConverter(reportPath, contentType, data)
	if err != nil {
		return convertedReport{}, fmt.Errorf("failed to find a converter for test report (%s): %w", reportPath.Path, err)
	}
	log.Printf("- format: %s", sourceFormat)

	run, err := source.Deserialize(data)
	if err != nil {
		return convertedReport{}, fmt.Errorf("failed to read %s test report (%s): %w", sourceFormat, reportPath.Path, err)
	}

	summary := run.Summary()
	log.Printf("- suites: %d, tests: %d, passed: %d, failed: %d, skipped: %d", len(run.Suites), summary.Total, summary.Passed, summary.Failed+summary.Error+summary.Hang, summary.Skipped+summary.NoRun)

	converted, err := target.Serialize(run)
	if err != nil {
		return convertedReport{}, fmt.Errorf("failed to write %s test report: %w", targetFormat, err)
	}

	outputPath := uniqueOutputPath(outputDir, reportPath.Path, targetFormat, usedPaths)
	if err := fileutil.WriteBytesToFile(outputPath, converted); err != nil {
		return convertedReport{}, fmt.Errorf("failed to write converted test report (%s): %w", outputPath, err)
	}
	log.Donef("- converted: %s", outputPath)

	name := run.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(reportPath.Path), filepath.Ext(reportPath.Path))
	}

	return convertedReport{Name: name, Path: outputPath, Format: targetFormat, Run: run}, nil
}

// uniqueOutputPath names the output after the input report, a counter is appended on collision.
func uniqueOutputPath(outputDir, inputPath string, targetFormat format.Format, usedPaths map[string]bool) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	if base == "" {
		base = "test_report"
	}

	pth := filepath.Join(outputDir, base+targetFormat.Extension())
	for i := 1; usedPaths[pth]; i++ {
		pth = filepath.Join(outputDir, base+"_"+strconv.Itoa(i)+targetFormat.Extension())
	}
	usedPaths[pth] = true
	return pth
}

func redactReports(reports []convertedReport, secrets []string, logger logV2.Logger) error {
	var paths []string
	for _, report := range reports {
		if report.Format == format.ZipArchive {
			log.Warnf("Secrets are not redacted from zip archive: %s", report.Path)
			continue
		}
		paths = append(paths, report.Path)
	}

	log.Printf("Redacting secrets from %d test reports", len(paths))
	return fileredactor.NewFileRedactor(fileutilV2.NewFileManager(), logger).RedactFiles(paths, secrets)
}

func exportOutputs(reports []convertedReport) error {
	var paths []string
	for _, report := range reports {
		paths = append(paths, report.Path)
	}

	if err := tools.ExportEnvironmentWithEnvman(convertedReportPathEnvKey, paths[0]); err != nil {
		return fmt.Errorf("failed to export %s, error: %s", convertedReportPathEnvKey, err)
	}
	log.Printf("The converted test report path is now available in the Environment Variable: %s (value: %s)", convertedReportPathEnvKey, paths[0])

	list := strings.Join(paths, "|")
	if err := tools.ExportEnvironmentWithEnvman(convertedReportPathListEnvKey, list); err != nil {
		return fmt.Errorf("failed to export %s, error: %s", convertedReportPathListEnvKey, err)
	}
	log.Printf("The converted test report paths are now available in the Environment Variable: %s (value: %s)", convertedReportPathListEnvKey, list)

	return nil
}

func uploadReports(reports []convertedReport, config Config, logger logV2.Logger) {
	if config.AddonAPIToken == "" || config.AddonAPIBaseURL == "" {
		return
	}

	fmt.Println()
	log.Infof("Upload test reports")

	var results test.Results
	for _, report := range reports {
		content, err := fileutil.ReadBytesFromFile(report.Path)
		if err != nil {
			log.Warnf("Failed to read converted test report (%s): %s", report.Path, err)
			continue
		}
		results = append(results, test.NewResult(report.Name, report.Format, content, report.Run, stepInfo))
	}

	log.Printf("- uploading (%d) test reports", len(results))
	if err := results.Upload(string(config.AddonAPIToken), config.AddonAPIBaseURL, config.AppSlug, config.BuildSlug, logger); err != nil {
		log.Warnf("Failed to upload test reports: %s", err)
		return
	}
	log.Donef("Success")
}
