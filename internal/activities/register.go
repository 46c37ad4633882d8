package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.SelectDocumentsActivity)
	w.RegisterActivity(a.MarkAnalysisProcessingActivity)
	w.RegisterActivity(a.ExtractContentActivity)
	w.RegisterActivity(a.AnalyzeContentActivity)
	w.RegisterActivity(a.ApplyAnalysisActivity)
	w.RegisterActivity(a.MarkAnalysisFailedActivity)
	w.RegisterActivity(a.WriteBatchReportActivity)
}
