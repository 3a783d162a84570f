// Package academic holds the academic progression rules: the GPA and credit
// ledger, warning evaluation, enrollment admission gates and recommendation
// scoring.
//
// Every function here is pure. Callers pass immutable snapshots read from
// storage and receive decisions (issue, resolve, reject with reason, ranked
// lists); applying those decisions to storage is the service layer's job.
package academic
