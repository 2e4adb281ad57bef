package commands

import "os"

var stdout = os.Stdout
