package oracle

import "time"

// Recorder 接收尝试开始与结束的统计
type Recorder interface {
	AttemptStarted(mode string)
	AttemptFinished(mode, state string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) AttemptStarted(string)                         {}
func (nopRecorder) AttemptFinished(string, string, time.Duration) {}
