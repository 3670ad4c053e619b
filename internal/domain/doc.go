// Package domain models SNOTEL observations and their SHEF encoding.
//
// # Data Source
//
// Observations come from the NRCS Air and Water Database (AWDB) REST service,
// https://wcc.sc.egov.usda.gov/awdbRestApi/. Stations are addressed by a
// triplet "<station id>:<state>:<network>", e.g. "1107:WA:SNTL". The service
// reports readings in station-local standard time and publishes the station's
// offset from UTC as "dataTimeZone" (e.g. -8 for PST).
//
// # Element Codes
//
//	PREC  accumulated precipitation   -> PC
//	TOBS  observed air temperature    -> TA
//	WTEQ  snow water equivalent       -> SW
//	SNWD  snow depth                  -> SD
//
// # SHEF Output
//
// Published bulletins carry a two line WMO-style header followed by one .A
// line per observation:
//
//	TTAA00 KPTR 011305
//	snotelWeb
//	.AR CLJW1 20241101 Z DH1300/DUE /SWIRBZZ 12.3
//
// "DUE" selects English units, the duration letter is I (instantaneous,
// hourly runs) or D (daily), RB is the type/source code and ZZ means no
// extremum and no probability qualifier.
//
// # Incremental Publishing
//
// Each run encodes the full look-back window into a "new" snapshot and
// compares it line by line with the previous run's snapshot ("last"). Only
// lines missing from "last" are published. See [ComputeDelta].
package domain
