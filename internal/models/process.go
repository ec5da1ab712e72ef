package models

import "time"

type ProcessDetail struct {
	Title          string    `json:"title"`          //service id owning the process
	Command        string    `json:"command"`        //command template before substitution
	Args           []string  `json:"args"`           //resolved argument vector of the last start
	WorkDir        string    `json:"workDir"`        //working directory
	Pid            int       `json:"pid"`            //process id, 0 when no handle
	Running        bool      `json:"running"`        //handle present and process alive
	StartTime      time.Time `json:"startTime"`      //last start time
	LastExitTime   time.Time `json:"lastExitTime"`   //last exit time
	LastExitReason string    `json:"lastExitReason"` //last exit reason
	RSS            uint64    `json:"rss,omitempty"`  //resident memory in bytes
	CPUPercent     float64   `json:"cpuPercent,omitempty"`
}
