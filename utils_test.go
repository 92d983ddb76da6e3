package uppat

import (
	"fmt"
	"strings"
)

// witness builds the checker text of a pipe-network run: one state per
// fired label plus the initial one, with the net walking
// route-numbered locations. Two runs over the same labels but
// different routes share their pattern while differing in path, which
// is exactly the shape the refinement retry has to cope with.
func witness(route string, labels ...string) string {
	loc := func(i int) string {
		if i == 0 {
			return "Start"
		}
		return fmt.Sprintf("%s%d", route, i)
	}

	var b strings.Builder
	balls := 0
	for i := 0; i <= len(labels); i++ {
		if i > 0 {
			b.WriteString("----------------------------------------\n")
		}
		fmt.Fprintf(&b, "State [%d]: Input.Idle, PipeNet.%s, Observer.Waiting\n", i, loc(i))
		fmt.Fprintf(&b, "global_variables [%d]: balls=%d\n", i, balls)
		fmt.Fprintf(&b, "Clock_constraints [%d]: t(0) - gclk <= %d; gclk - t(0) <= %d\n", i, -100*i, 100*i+50)
		if i == len(labels) {
			break
		}

		label := labels[i]
		src, dst := "PipeNet", "PipeNet"
		switch {
		case label == "input_ball":
			src, dst = "Input", "PipeNet"
			balls++
		case strings.HasPrefix(label, "exit"):
			src, dst = "PipeNet", "Observer"
			balls--
		}
		fmt.Fprintf(&b, "transitions [%d]: %s: %s -> %s; PipeNet.%s -> PipeNet.%s\n",
			i, label, src, dst, loc(i), loc(i+1))
	}
	return b.String()
}

// Two balls dropped into the pipe network, observed at the exits. The
// hidden hops differ between the runs only after the shared prefix, so
// the two patterns exercise prefix sharing in the trie encoding.
var (
	pipeModel = []byte("<nta><template>Input</template><template>PipeNet</template><template>Observer</template></nta>")
	pipeQuery = "E<> Observer.Done"

	patternOne = []string{
		"input_ball", "hidden_path1", "hidden_path3", "exit1",
		"input_ball", "hidden_path1", "hidden_path4", "exit2",
	}
	patternTwo = []string{
		"input_ball", "hidden_path1", "hidden_path3", "exit1",
		"input_ball", "hidden_path2", "hidden_path5", "exit2",
	}

	witnessOne = witness("L", patternOne...)
	witnessTwo = witness("R", patternTwo...)
)
