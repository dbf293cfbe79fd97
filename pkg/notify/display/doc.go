// Package display orders entries waiting to be shown by a renderer.
//
// A Queue pops the highest priority first and keeps arrival order among
// equal priorities, so a burst of banners is presented the way a user
// expects.
package display
