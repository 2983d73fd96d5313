/*
Package storage keeps the run journal: a BoltDB file recording every
burrow invocation, its membership decision and the reconcile result of
every cluster object it touched.

Runs are stored as JSON in the "runs" bucket, keyed by a UUIDv7 run id.
The ids sort by creation time, so iterating the bucket lists runs in the
order they started:

	store, err := storage.NewBoltStore("/var/lib/burrow/journal.db")
	if err != nil {
		return err
	}
	defer store.Close()

	run := storage.NewRun("apply", host, checkMode)
	...
	err = store.CreateRun(run)

The database is opened with a lock timeout, so concurrent runs on the
same host wait for each other instead of failing immediately.
*/
package storage
