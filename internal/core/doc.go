// Package core runs validation jobs and keeps the per-resource validation
// record.
//
// # Record Lifecycle
//
// A run moves the record of one resource through these states:
//
//  1. [Service.Start] looks up or creates the record and commits it as
//     running, so status queries during the run see it.
//  2. The dataset is fetched from the catalog and the [Scanner] produces a
//     raw report.
//  3. The raw report is normalized into a status (success, failure or
//     error) and an optional error payload.
//  4. [Service.Finish] stores the result with a UTC finished time and
//     patches the catalog resource as the site user.
//
// [Service.RunValidationJob] performs all four steps and always ends in a
// terminal status, including when the scan fails or panics.
//
// # Scheduling
//
// [Dispatcher] runs jobs inline ([Dispatcher.Run]) or in the background
// ([Dispatcher.Dispatch]). Runs are bounded by a [RunLimiter] and
// serialised per resource id.
//
// # Persistence
//
// [Store] abstracts the record table. [PGStore] implements it with the
// sqlc queries in the database package.
package core
