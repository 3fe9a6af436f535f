// Package mapview turns decoded provider responses and map entities into the
// ordered layer list the browser renderer draws.
//
// The pipeline is leaf-first: Classify partitions route features by geometry
// kind, Trips maps each line onto normalized timestamps for the animated
// pulse, Summary extracts the route totals, and Compose merges the static
// entity layers with the dynamic route layers. Clock drives the animation time
// and Sequencer keeps a superseded provider lookup from overwriting a newer one.
package mapview
