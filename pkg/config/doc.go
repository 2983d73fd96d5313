/*
Package config loads burrow's settings and the desired cluster state.

Settings come from persistent command line flags and BURROW_* environment
variables, bound through viper. The desired state is a YAML document
validated with struct tags:

	cluster:
	  name: web
	  nodeList: n1 n2 n3
	  allowNodeAdd: true
	resources:
	  - name: vip
	    type: ocf:heartbeat:IPaddr2
	    options: ip=192.168.1.10 cidr_netmask=24
	constraints:
	  order:
	    - resource1: vip
	      resource2: apache
	properties:
	  - name: stonith-enabled
	    value: "true"
*/
package config
