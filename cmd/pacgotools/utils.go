package main

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Most commands need this, so... yeah
func PrintJson(obj interface{}) {
	rawjson, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		log.Fatalln("Couldn't serialize json: ", err)
	}
	fmt.Println(string(rawjson))
}

// Get a filesafe datetime, condensed (local time, I hope)
func FileSafeDateTime() string {
	return time.Now().Format("20060102-150405")
}

// Quick way to fail on error, since most commands are "doing" something on
// behalf of something else.
func fatalIfErr(subject string, doing string, err error) {
	if err != nil {
		log.Fatalf("%s - Couldn't %s: %s", subject, doing, err)
	}
}
