// Package scenario loads scripted notification sessions from YAML, TOML or
// JSON files and plays them against a running notify.Delegater.
//
// A scenario names the components to start and lists steps:
//
//	name: chat
//	components: [remote, local]
//	steps:
//	  - action: send
//	    ref: hello
//	    title: Hello
//	    targets: [remote, local]
//	    ringtone: bell
//	  - action: wait
//	    duration: 200ms
//	  - action: cancel
//	    ref: hello
//
// Entries sent by a step are remembered under their ref so later update
// and cancel steps can address them.
package scenario
