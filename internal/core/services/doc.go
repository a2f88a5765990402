// Package services implements the driving port interfaces.
// Services contain the search logic and orchestrate calls to
// driven ports (adapters).
//
// A SearchSession is the unit of work: it enumerates candidate files,
// evaluates phrase rules and streams events until it completes or is
// cancelled.
package services
