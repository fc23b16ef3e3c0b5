// Package backup runs the fetch, select and upload pipeline.
//
// A Runner asks its PhotoSource for the most liked profile photos, makes
// sure the destination folder exists, then downloads and stores the photos
// one after another. The first failure ends the run. Successful runs write
// a JSON report (see package report).
//
//	runner, err := backup.New(cfg, logger.GetLogger())
//	if err != nil {
//	    return err
//	}
//	runner.SetProgress(ui.NewProgressDisplay("id1", false))
//	rep, err := runner.Run(ctx, 1)
package backup
