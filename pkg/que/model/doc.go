// Package model provides the data structures shared by the que package and its observers.
// It defines the step descriptors handed to observers and the observer contract itself,
// so that add-ons such as measure and drawer do not depend on the generic pipeline types.
package model
