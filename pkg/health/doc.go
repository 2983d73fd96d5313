/*
Package health runs the preflight checks of burrow doctor.

A Checker reports on one component: the local pcs installation, the CIB,
or pcsd on a peer node. Run performs the checks in order and records each
outcome in the metrics health registry, from which the readiness of the
critical components is derived.

	results := health.Run(ctx,
		&health.FuncChecker{Component: "pcs", Fn: pcsVersion},
		health.NewPCSDChecker("n2.example.com"),
	)
*/
package health
