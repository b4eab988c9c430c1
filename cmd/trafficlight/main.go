// Command trafficlight runs a Green, Yellow, Red traffic light on stepfsm,
// stepping the machine manually after each light's hold time.
package main

import (
	"fmt"
	"os"
	"time"
)

func main() {
	if err := newRootCmd(time.Sleep).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
